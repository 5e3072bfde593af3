// Package searchbar builds the search index of a generated documentation
// site.
//
// An Installer walks a page tree, turns every documented symbol into a
// SearchRecord and registers a "scripts/pages.js" resource page whose text
// is computed only when the site writer supplies a location resolver:
//
//	inst := &searchbar.Installer{
//	    Policy: &searchbar.DefaultPolicy{Reporter: logging.NewReporter(logger)},
//	    Config: searchbar.Config{ModuleName: "core"},
//	}
//	tree = inst.Invoke(tree)
//
// # Output modes
//
// In immediate mode the script assigns the records to a global:
//
//	var pages = [{"name":"fun bar(): Int","description":"pkg.Foo.bar",...}]
//
// With delayed template substitution the script is instead a directive
// object {"moduleName": ..., "elements": [...]} which a later merge pass
// (package templating) combines across modules.
//
// # Customisation
//
// Policy exposes the three steps of record generation. Embed DefaultPolicy
// and override CreateSearchRecord to change the record shape while keeping
// the default walk and ordering, or implement GeneratePagesList to replace
// list generation entirely.
package searchbar
