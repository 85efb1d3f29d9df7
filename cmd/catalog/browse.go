package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/matst80/dematerialized-catalog/pkg/filters"
	"github.com/matst80/dematerialized-catalog/pkg/render"
	"github.com/matst80/dematerialized-catalog/pkg/session"
	"github.com/matst80/dematerialized-catalog/pkg/types"
	"github.com/spf13/cobra"
)

const browseHelp = `commands:
  n, p          next or previous page
  b, f          back or forward in history
  +<group> <v>  check a box, e.g. +color Red or +category Jackets|1|jackets
  -<group>      uncheck every box of a group
  r             reset all filters
  k             show detected keys
  w <id>        toggle an item on the wishlist
  q             quit`

func newBrowseCmd(opts *rootOptions) *cobra.Command {
	var address string
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog interactively",
		Long:  browseHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			addr, err := parseAddress(address)
			if err != nil {
				return fmt.Errorf("invalid address: %w", err)
			}
			boxes := filters.NewStaticCheckboxes()
			s, term, _ := opts.app.newSession(ctx, cmd.OutOrStdout(), boxes, addr)
			defer s.Close()
			s.Start(ctx)
			return browse(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), s, boxes, term)
		},
	}
}

// browse reads commands line by line until q or end of input. Filter
// changes are debounced like checkbox clicks.
func browse(ctx context.Context, in io.Reader, out io.Writer, s *session.Session, boxes *filters.StaticCheckboxes, term *render.Terminal) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		switch {
		case cmd == "":
			continue
		case cmd == "q":
			return nil
		case cmd == "n":
			if !s.NextPage(ctx) {
				fmt.Fprintln(out, "no next page")
			}
		case cmd == "p":
			if !s.PrevPage(ctx) {
				fmt.Fprintln(out, "no previous page")
			}
		case cmd == "b":
			if !s.Back(ctx) {
				fmt.Fprintln(out, "nothing to go back to")
			}
		case cmd == "f":
			if !s.Forward(ctx) {
				fmt.Fprintln(out, "nothing to go forward to")
			}
		case cmd == "r":
			s.ResetFilters(ctx)
		case cmd == "k":
			term.RenderKeys(s.Keys())
		case cmd == "w":
			if arg == "" {
				fmt.Fprintln(out, "usage: w <item-id>")
				continue
			}
			added, err := s.ToggleWishlist(ctx, arg)
			if err != nil {
				term.RenderError(err)
				continue
			}
			fmt.Fprintf(out, "wishlist %s: %t\n", arg, added)
		case strings.HasPrefix(cmd, "+"):
			g, ok := groupOf(cmd[1:])
			if !ok {
				fmt.Fprintf(out, "unknown group %q\n", cmd[1:])
				continue
			}
			input, err := parseInput(arg)
			if err != nil {
				term.RenderError(err)
				continue
			}
			boxes.Check(g, input)
			s.FilterChanged(ctx)
		case strings.HasPrefix(cmd, "-"):
			g, ok := groupOf(cmd[1:])
			if !ok {
				fmt.Fprintf(out, "unknown group %q\n", cmd[1:])
				continue
			}
			boxes.Uncheck(g)
			s.FilterChanged(ctx)
		default:
			fmt.Fprintln(out, browseHelp)
		}
	}
	return scanner.Err()
}

func groupOf(name string) (types.Group, bool) {
	for _, g := range types.Groups {
		if strings.EqualFold(name, string(g)) || strings.EqualFold(name, g.Plural()) {
			return g, true
		}
	}
	return "", false
}
