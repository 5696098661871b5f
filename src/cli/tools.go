// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

// NewToolsCommand creates the tools subcommand, which prints the catalog as
// two markdown tables.
func NewToolsCommand(factory CatalogFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List registered tools and resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := factory()
			if err != nil {
				return err
			}
			return renderCatalog(cmd.OutOrStdout(), catalog)
		},
	}
}

func renderCatalog(w io.Writer, catalog Catalog) error {
	fmt.Fprintln(w, "Tools")
	fmt.Fprintln(w)
	if err := renderTools(w, catalog.ListTools()); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Resources")
	fmt.Fprintln(w)
	return renderResources(w, catalog.ListResources())
}

func renderTools(w io.Writer, tools []mcp.Tool) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)
	table.Header([]string{"Name", "Description", "Arguments"})

	rows := make([][]string, 0, len(tools))
	for _, t := range tools {
		rows = append(rows, []string{t.Name, t.Description, describeArguments(t)})
	}

	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to render tools: %w", err)
	}
	return table.Render()
}

func renderResources(w io.Writer, resources []mcp.Resource) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)
	table.Header([]string{"URI", "Name", "MIME Type", "Description"})

	rows := make([][]string, 0, len(resources))
	for _, r := range resources {
		rows = append(rows, []string{r.URI, r.Name, r.MIMEType, r.Description})
	}

	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to render resources: %w", err)
	}
	return table.Render()
}

// describeArguments lists the schema properties in name order, marking required ones with '*'.
func describeArguments(t mcp.Tool) string {
	names := make([]string, 0, len(t.InputSchema.Properties))
	for name := range t.InputSchema.Properties {
		names = append(names, name)
	}
	slices.Sort(names)

	for i, name := range names {
		if slices.Contains(t.InputSchema.Required, name) {
			names[i] = name + "*"
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
