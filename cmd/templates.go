package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bughunter/bughunter/internal/domain/scan"
	"github.com/bughunter/bughunter/internal/domain/template"
	sharedErrors "github.com/bughunter/bughunter/internal/shared/errors"
)

// templatesCmd is the parent command for template catalog operations
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Browse the vulnerability template catalog",
}

// templatesListCmd lists the loaded catalog
var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all loaded templates, most severe first",
	RunE: func(cmd *cobra.Command, args []string) error {
		printTemplates(app.Catalog.All())
		return nil
	},
}

// templatesSearchCmd searches the catalog
var templatesSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search templates by keyword, category and severity",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		category, _ := cmd.Flags().GetString("category")
		severityStr, _ := cmd.Flags().GetString("severity")

		var severity scan.Severity
		if severityStr != "" {
			severity = scan.Severity(strings.ToLower(severityStr))
			if !severity.IsValid() {
				return fmt.Errorf("%w: %s", sharedErrors.ErrInvalidSeverity, severityStr)
			}
		}

		results := app.Catalog.Search(query, category, severity)
		if len(results) == 0 {
			fmt.Println("No templates matched")
			return nil
		}

		printTemplates(results)
		return nil
	},
}

// templatesShowCmd shows one template in detail
var templatesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show one template's details",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		if id == "" {
			return errors.New("--id is required")
		}

		tmpl, ok := app.Catalog.Get(id)
		if !ok {
			return fmt.Errorf("%w: %s", sharedErrors.ErrTemplateNotFound, id)
		}

		fmt.Printf("ID:          %s\n", tmpl.ID)
		fmt.Printf("Name:        %s\n", tmpl.Name)
		fmt.Printf("Category:    %s\n", tmpl.Category)
		fmt.Printf("Severity:    %s\n", formatSeverityWithColor(string(tmpl.Severity)))
		fmt.Printf("Description: %s\n", tmpl.Description)
		if len(tmpl.Tags) > 0 {
			fmt.Printf("Tags:        %s\n", strings.Join(tmpl.Tags, ", "))
		}
		if tmpl.CVSSScore > 0 {
			fmt.Printf("CVSS:        %.1f\n", tmpl.CVSSScore)
		}
		fmt.Printf("Conditions:  %d\n", tmpl.ConditionCount())
		fmt.Printf("File:        %s\n", tmpl.Path)
		return nil
	},
}

func printTemplates(templates []template.Template) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSeverity\tCategory\tName")
	fmt.Fprintln(w, "--\t--------\t--------\t----")
	for _, t := range templates {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			t.ID,
			formatSeverityWithColor(string(t.Severity)),
			t.Category,
			t.Name,
		)
	}
	w.Flush()
	fmt.Printf("\n%d templates\n", len(templates))
}

func init() {
	templatesSearchCmd.Flags().StringP("query", "q", "", "Substring matched against template id and description")
	templatesSearchCmd.Flags().String("category", "", "Exact category filter")
	templatesSearchCmd.Flags().String("severity", "", "Exact severity filter (critical, high, medium, low, info)")

	templatesShowCmd.Flags().String("id", "", "Template ID")

	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesSearchCmd)
	templatesCmd.AddCommand(templatesShowCmd)
}
