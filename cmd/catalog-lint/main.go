// cmd/catalog-lint - Validates an achievement catalog and prints its point maxima
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"discjourney/catalog"
	"discjourney/progression"
)

func main() {
	path := flag.String("path", "", "catalog file to check (default: the embedded catalog)")
	disabled := flag.String("disabled", os.Getenv("DISABLED_ACHIEVEMENTS"), "extra comma separated ids to disable")
	flag.Parse()

	os.Exit(lint(os.Stdout, catalog.Options{
		Path:          *path,
		ExtraDisabled: catalog.ParseDisabledList(*disabled),
	}))
}

// lint prints the report and returns the process exit code.
func lint(w io.Writer, opts catalog.Options) int {
	name := opts.Path
	if name == "" {
		name = "embedded catalog"
	}

	cat, issues, err := catalog.Load(opts)
	for _, issue := range issues {
		fmt.Fprintf(w, "%s: %s\n", name, issue)
	}
	if err != nil {
		fmt.Fprintf(w, "%s: %v\n", name, err)
		return 1
	}

	fmt.Fprintf(w, "%s: %d achievements, %d disabled\n", name, len(cat.Definitions()), len(cat.DisabledIDs()))
	for _, tab := range progression.Tabs {
		max := cat.TabMaxPoints(tab)
		fmt.Fprintf(w, "  %-10s max %5d points, mastery step %d\n", tab, max, progression.MasteryStep(max))
	}
	if len(issues) == 0 {
		fmt.Fprintf(w, "%s: OK\n", name)
	}
	return 0
}
