package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRawCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "raw <title>",
		Short: "Print the wiki source of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.client(cmd)
			if err != nil {
				return err
			}
			text, err := c.FetchRaw(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		},
	}
}

func newRenderCmd(s *session) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "render <title>",
		Short: "Print the rendered HTML of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.client(cmd)
			if err != nil {
				return err
			}
			fetch := c.FetchRendered
			if full {
				fetch = c.FetchFull
			}
			html, err := fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), html)
			return err
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Include the skin")
	return cmd
}

func newCategoriesCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "categories <title>",
		Short: "List the categories of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.client(cmd)
			if err != nil {
				return err
			}
			cats, err := c.PageCategories(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printLines(cmd, cats)
		},
	}
}

func newMembersCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "members <category>",
		Short: "List the main namespace pages of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.client(cmd)
			if err != nil {
				return err
			}
			pages, err := c.CategoryMembers(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printLines(cmd, pages)
		},
	}
}

func newInfoCmd(s *session) *cobra.Command {
	var prop string
	cmd := &cobra.Command{
		Use:   "info <title>",
		Short: "Print page info as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.client(cmd)
			if err != nil {
				return err
			}
			var v interface{}
			if prop != "" {
				v, err = c.InfoProp(cmd.Context(), args[0], prop)
			} else {
				v, err = c.Info(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		},
	}
	cmd.Flags().StringVar(&prop, "prop", "", "Print a single property")
	return cmd
}

func printLines(cmd *cobra.Command, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n"))
	return err
}
