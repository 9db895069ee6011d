package commands

import (
	"fmt"
	"strings"

	"github.com/dyluth/roster/internal/filter"
	"github.com/dyluth/roster/internal/printer"
	"github.com/dyluth/roster/internal/view"
	"github.com/dyluth/roster/pkg/docstore"
	"github.com/spf13/cobra"
)

func newResourceCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resource",
		Aliases: []string{"resources", "link"},
		Short:   "Manage the team's shared links",
	}
	cmd.AddCommand(newResourceAddCmd(g), newResourceListCmd(g), newResourceRemoveCmd(g))
	return cmd
}

func newResourceAddCmd(g *globalOptions) *cobra.Command {
	var (
		resourceType string
		desc         string
		id           string
	)

	cmd := &cobra.Command{
		Use:   "add TITLE URL",
		Short: "Add a link to the top of the list",
		Example: `  roster resource add "Playbook" https://example.com/playbook --type guide
  roster resource add "Scrim VOD" https://video.example/1 --type video --desc "watch before friday"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			rt := docstore.ResourceType(strings.ToLower(resourceType))
			if !s.team.AllowsResourceType(rt) {
				return printer.Error(
					"invalid resource type",
					fmt.Sprintf("Type %q is not accepted by this team.", resourceType),
					[]string{fmt.Sprintf("Valid types: %s", strings.Join(allowedTypes(s), ", "))},
				)
			}

			if err := s.load(""); err != nil {
				return err
			}

			added, err := s.orch.AddResource(docstore.Resource{
				ID:    id,
				Title: strings.TrimSpace(args[0]),
				URL:   strings.TrimSpace(args[1]),
				Type:  rt,
				Desc:  strings.TrimSpace(desc),
			})
			if err != nil {
				return printer.Error("invalid resource", err.Error(), []string{"URLs must be absolute, e.g. https://example.com"})
			}

			printer.Success("Added %q (%s)\n", added.Title, added.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&resourceType, "type", "t", string(docstore.ResourceTypeLink), "Resource type: link, video, guide or tool")
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "Optional description")
	cmd.Flags().StringVar(&id, "id", "", "Explicit id (generated when omitted)")

	return cmd
}

func newResourceListCmd(g *globalOptions) *cobra.Command {
	var criteria filter.Criteria

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List links, newest first",
		Example: `  roster resource list
  roster resource list --type video
  roster resource list --title "*vod*"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := criteria.Validate(); err != nil {
				return printer.Error("invalid filter", err.Error(), []string{"Filters are glob patterns, e.g. --type 'vid*' or --title '*vod*'"})
			}

			s, err := openSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.load(""); err != nil {
				return err
			}

			all := s.orch.Resources()
			matched := criteria.Apply(all)
			if criteria.HasFilters() && len(all) > 0 && len(matched) == 0 {
				printer.Info("No resources match the filter (%d in total)\n", len(all))
				return nil
			}
			_, err = view.RenderResources(printer.Stdout(), matched)
			return err
		},
	}

	cmd.Flags().StringVarP(&criteria.TypeGlob, "type", "t", "", "Only show types matching this glob")
	cmd.Flags().StringVar(&criteria.TitleGlob, "title", "", "Only show titles matching this glob (case-insensitive)")
	return cmd
}

func newResourceRemoveCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Remove a link by id or unique id prefix",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.load(""); err != nil {
				return err
			}

			id, err := resolveResourceID(s.orch.Resources(), args[0])
			if err != nil {
				return printer.Error("resource not found", err.Error(), []string{"List resources and their ids:\n  roster resource list"})
			}

			s.orch.RemoveResource(id)
			printer.Success("Removed %s\n", id)
			return nil
		},
	}
}

// resolveResourceID matches an exact id first, then a unique prefix.
func resolveResourceID(list docstore.ResourceList, ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("resource id cannot be empty")
	}

	var matches []string
	seen := make(map[string]bool)
	for _, r := range list {
		if r.ID == ref {
			return r.ID, nil
		}
		if strings.HasPrefix(r.ID, ref) && !seen[r.ID] {
			seen[r.ID] = true
			matches = append(matches, r.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no resource with id %q", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id prefix %q is ambiguous: matches %s", ref, strings.Join(matches, ", "))
	}
}

func allowedTypes(s *session) []string {
	if len(s.team.ResourceTypes) > 0 {
		return s.team.ResourceTypes
	}
	return []string{
		string(docstore.ResourceTypeLink),
		string(docstore.ResourceTypeVideo),
		string(docstore.ResourceTypeGuide),
		string(docstore.ResourceTypeTool),
	}
}
