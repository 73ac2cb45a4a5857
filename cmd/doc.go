package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/mabhi256/vardig/internal/comment"
	"github.com/mabhi256/vardig/utils"
	"github.com/spf13/cobra"
)

var docCmd = &cobra.Command{
	Use:   "doc [package] [Type] [Method]",
	Short: "Show resolved doc comments of a type or method",
	Long: `Load a package from source and print the documentation vardig shows for a type:
its comment, directives, parent, interfaces, embedded types, constants and methods.
Method comments that refer to an inherited comment are resolved through the parent,
the interfaces and the embedded types.

Examples:
  vardig doc main Config
  vardig doc github.com/acme/shop/cart Cart Total`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.LoadSource = true
		if cfg.SourceDir == "" {
			cfg.SourceDir = "."
		}

		d, err := newDumper(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		class := d.Index().Class(args[0], args[1])
		if class == nil {
			return fmt.Errorf("type %s.%s not found in %s", args[0], args[1], cfg.SourceDir)
		}

		w := cmd.OutOrStdout()
		if len(args) == 3 {
			return printMethodDoc(w, d.Resolver(), class, args[2])
		}
		printTypeDoc(w, d.Resolver(), class)
		return nil
	},
}

func printTypeDoc(w io.Writer, r *comment.Resolver, class *comment.ClassDoc) {
	fmt.Fprintln(w, utils.TitleStyle.Render(class.QualifiedName()))

	if doc := r.TypeComment(class); doc != "" {
		fmt.Fprintln(w, utils.TextStyle.Render(doc))
	}
	fmt.Fprintln(w)

	const keyWidth = 14
	row := func(key, value string) {
		if value != "" {
			fmt.Fprintln(w, utils.FormatKeyValue(key, value, keyWidth))
		}
	}

	if class.File != "" {
		row("Declared in", fmt.Sprintf("%s:%d", class.File, class.Line))
	}
	row("Directives", strings.Join(r.TypeAttributes(class), ", "))
	if class.Parent != nil {
		row("Parent", class.Parent.QualifiedName())
	}
	row("Interfaces", qualifiedNames(class.Interfaces))
	row("Embeds", qualifiedNames(class.Traits))

	if len(class.Constants) > 0 {
		fmt.Fprintln(w, "\n"+utils.InfoStyle.Render("Constants"))
		for _, c := range class.Constants {
			fmt.Fprintf(w, "  %s = %s\n", utils.NameStyle.Render(c.Name), utils.NumberStyle.Render(c.Value))
		}
	}

	methods := class.SortedMethods()
	if len(methods) > 0 {
		fmt.Fprintln(w, "\n"+utils.InfoStyle.Render("Methods"))
		for _, m := range methods {
			line := "  " + utils.NameStyle.Render(m.Name) + utils.TypeStyle.Render(m.Params+" "+m.Results)
			if m.Promoted {
				line += utils.MutedStyle.Render("  promoted")
			}
			fmt.Fprintln(w, line)
		}
	}
}

func printMethodDoc(w io.Writer, r *comment.Resolver, class *comment.ClassDoc, name string) error {
	m, ok := class.Method(name)
	if !ok {
		return fmt.Errorf("method %s not found on %s", name, class.QualifiedName())
	}

	fmt.Fprintln(w, utils.TitleStyle.Render(class.QualifiedName()+"."+m.Name+m.Params+" "+m.Results))
	if doc := r.MethodComment(class, name); doc != "" {
		fmt.Fprintln(w, utils.TextStyle.Render(doc))
	}
	if pos := m.DeclaredIn(); pos != "" {
		fmt.Fprintln(w, utils.MutedStyle.Render(pos))
	}
	return nil
}

func qualifiedNames(classes []*comment.ClassDoc) string {
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = c.QualifiedName()
	}
	return strings.Join(names, ", ")
}

func init() {
	rootCmd.AddCommand(docCmd)
}
