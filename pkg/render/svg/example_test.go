package svg_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/stratum/pkg/layout"
	"github.com/matzehuels/stratum/pkg/render/svg"
)

func ExampleRender() {
	res, _ := layout.Single(context.Background(), []layout.InputNode{
		{ID: "api", DownRelations: []layout.InputRelation{{SourceID: "api", TargetID: "db"}}},
		{ID: "db"},
	}, layout.Config{})

	out := string(svg.Render(res, svg.WithTheme("dark")))
	fmt.Println(strings.HasPrefix(out, "<svg"))
	fmt.Println(strings.Count(out, `class="node"`))
	fmt.Println(strings.Count(out, `class="link"`))
	// Output:
	// true
	// 2
	// 1
}
