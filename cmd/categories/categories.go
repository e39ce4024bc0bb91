// Package categories lists the categories a session can assign
package categories

import (
	"errors"
	"fmt"
	"io"

	"fjacquet/txcat/cmd/root"
	"fjacquet/txcat/internal/categorizer"

	"github.com/spf13/cobra"
)

// Cmd represents the categories command
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "List the configured categories",
	Long: `List the categories loaded from the categories file with their type and
the number of keyword rules that point at them.`,
	RunE: categoriesFunc,
}

func categoriesFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return errors.New("container not initialized")
	}

	session, err := c.NewSession()
	if err != nil {
		return err
	}
	printCategories(cmd.OutOrStdout(), session)
	return nil
}

func printCategories(w io.Writer, session *categorizer.Categorizer) {
	index := session.Index()
	if index.Len() == 0 {
		_, _ = fmt.Fprintln(w, "No categories configured")
		return
	}

	for _, category := range index.Categories() {
		keywords, ok := session.Rules().Keywords(category.Name)
		rule := "no keyword rule"
		if ok {
			rule = fmt.Sprintf("%d keywords", len(keywords))
		}
		_, _ = fmt.Fprintf(w, "%-24s %-9s %s\n", category.Name, category.Type, rule)
	}
}
