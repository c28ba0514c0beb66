package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/Ngone6325/gofac/v2/discovery"
	"github.com/Ngone6325/gofac/v2/internal/config"
)

// declarationView is the serialized form of a ServiceDeclaration.
type declarationView struct {
	Contract       string `json:"contract" yaml:"contract"`
	Implementation string `json:"implementation" yaml:"implementation"`
	Lifetime       string `json:"lifetime" yaml:"lifetime"`
	Constructor    bool   `json:"constructor" yaml:"constructor"`
}

type planView struct {
	Services []declarationView `json:"services" yaml:"services"`
}

func newPlanView(plan discovery.RegistrationPlan) planView {
	v := planView{Services: make([]declarationView, 0, plan.Len())}
	for _, d := range plan.All() {
		v.Services = append(v.Services, declarationView{
			Contract:       d.Contract().String(),
			Implementation: d.Implementation().String(),
			Lifetime:       d.Lifetime().String(),
			Constructor:    d.Constructor() != nil,
		})
	}
	return v
}

// renderPlan writes plan to w in the given output format.
func renderPlan(w io.Writer, plan discovery.RegistrationPlan, format string) error {
	view := newPlanView(plan)
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	case config.OutputText, "":
		_, err := io.WriteString(w, renderPlanText(view)+"\n")
		return err
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func renderPlanText(view planView) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Registration plan"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%d service(s)", len(view.Services))))
	b.WriteString("\n")
	if len(view.Services) == 0 {
		return b.String()
	}

	rows := make([][]string, 0, len(view.Services))
	for i, s := range view.Services {
		ctor := "zero value"
		if s.Constructor {
			ctor = "constructor"
		}
		rows = append(rows, []string{fmt.Sprint(i), s.Contract, s.Implementation, s.Lifetime, ctor})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtitleStyle).
		Headers("#", "CONTRACT", "IMPLEMENTATION", "LIFETIME", "BUILT BY").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}
			if col == 3 {
				if c, ok := lifetimeColors[rows[row][3]]; ok {
					return CellStyle.Foreground(c)
				}
			}
			return CellStyle
		})
	b.WriteString(t.Render())
	return b.String()
}
