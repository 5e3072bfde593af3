package searchbar_test

import (
	"fmt"

	"github.com/canonical/docsearch/internal/content"
	"github.com/canonical/docsearch/internal/dri"
	"github.com/canonical/docsearch/internal/pages"
	"github.com/canonical/docsearch/internal/searchbar"
)

func ExampleInstaller_Records() {
	common := content.SourceSet{Name: "commonMain", Platform: content.PlatformCommon}
	bar := dri.MustParse("pkg.Foo#bar")

	page := &pages.ContentPage{
		Kind:       pages.KindMember,
		PageName:   "bar",
		DRIs:       dri.NewSet(bar),
		SourceSets: []content.SourceSet{common},
		Content: &content.Composite{
			Info:     content.DCI{Kind: content.KindSymbol, DRIs: dri.NewSet(bar)},
			Sources:  []content.SourceSet{common},
			Children: []content.Node{&content.Text{Value: "fun bar(): Int", Sources: []content.SourceSet{common}}},
		},
	}
	root := &pages.Root{ModuleName: "core", Pages: []pages.Node{page}}

	inst := &searchbar.Installer{Config: searchbar.Config{ModuleName: "core"}}
	records := inst.Records(root, func(dri.DRI, []content.SourceSet) string { return "pkg/Foo/bar.html" })

	out, err := searchbar.Render(records, false, "core")
	if err != nil {
		panic(err)
	}
	fmt.Println(out)
	// Output:
	// var pages = [{"name":"fun bar(): Int","description":"pkg.Foo.bar","location":"pkg/Foo/bar.html","searchKeys":["bar","fun bar(): Int","pkg.Foo.bar"]}]
}
