package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/cory-johannsen/dicetrace/internal/game/combat"
	"github.com/cory-johannsen/dicetrace/internal/game/dice"
)

// renderer prints roll results either as plain detail lines or as pterm boxes
// with a per-term table.
type renderer struct {
	w     io.Writer
	plain bool
}

func newRenderer(w io.Writer, plain bool) *renderer {
	return &renderer{w: w, plain: plain}
}

// Result prints a single evaluation.
func (r *renderer) Result(res dice.Result) {
	if r.plain {
		fmt.Fprintln(r.w, res.Detail)
		return
	}
	r.box(res.Expression, r.termTable(res)+"\n"+totalLine(res.Total))
}

// Advantage prints both evaluations of an advantage or disadvantage roll.
func (r *renderer) Advantage(res dice.AdvantageResult) {
	if r.plain {
		fmt.Fprintln(r.w, res.Detail)
		return
	}
	var b strings.Builder
	for i, ev := range []dice.Result{res.First, res.Second} {
		marker := pterm.Gray("dropped")
		if i == res.Index {
			marker = pterm.LightGreen("kept")
		}
		b.WriteString(pterm.Sprintfln("%s  %s", ev.Detail, marker))
	}
	b.WriteString(totalLine(res.Total))
	r.box(res.Mode.String()+" "+res.First.Expression, b.String())
}

// D20 prints a single-die advantage or disadvantage roll.
func (r *renderer) D20(res dice.D20Result) {
	if r.plain {
		fmt.Fprintln(r.w, res.Detail)
		return
	}
	body := pterm.Sprintfln("rolls %s  keep %s  drop %s  modifier %+d",
		pterm.LightCyan(fmt.Sprint(res.Rolls[:])),
		pterm.LightGreen(strconv.Itoa(res.Kept)),
		pterm.Gray(strconv.Itoa(res.Dropped)),
		res.Modifier,
	) + totalLine(res.Total)
	r.box(res.Expression, body)
}

// Attack prints a creature's to-hit and damage rolls.
func (r *renderer) Attack(name string, res combat.AttackResult) {
	toHit := res.ToHit.Detail
	if res.ToHitPair != nil {
		toHit = res.ToHitPair.Detail
	}
	lines := []string{fmt.Sprintf("%s: %s to hit: %s", name, res.Name, toHit)}
	for _, d := range res.Damage {
		label := d.Expr
		if d.Type != "" {
			label += " " + d.Type
		}
		if d.Err != nil {
			lines = append(lines, fmt.Sprintf("  damage %s: error: %v", label, d.Err))
			continue
		}
		lines = append(lines, fmt.Sprintf("  damage %s: %s", label, d.Result.Detail))
	}
	lines = append(lines, fmt.Sprintf("  total damage %d", res.TotalDamage()))

	if r.plain {
		fmt.Fprintln(r.w, strings.Join(lines, "\n"))
		return
	}
	r.box(name+" attack", strings.Join(lines, "\n"))
}

// Save prints a saving throw.
func (r *renderer) Save(name string, res combat.SaveResult) {
	detail := res.Result.Detail
	if res.Pair != nil {
		detail = res.Pair.Detail
	}
	line := fmt.Sprintf("%s: %s (%s): %s", name, res.Expr, res.ModifierDetail, detail)
	if r.plain {
		fmt.Fprintln(r.w, line)
		return
	}
	r.box(name+" save", line)
}

func (r *renderer) termTable(res dice.Result) string {
	data := pterm.TableData{{"term", "rolls", "kept", "dropped", "subtotal"}}
	for _, tr := range res.Terms {
		data = append(data, []string{
			tr.Term.String(),
			fmt.Sprint(tr.Rolls),
			fmt.Sprint(tr.Kept),
			fmt.Sprint(tr.Dropped),
			strconv.Itoa(tr.Subtotal),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return res.Detail
	}
	return table
}

func (r *renderer) box(title, body string) {
	pbox := pterm.DefaultBox.WithHorizontalPadding(2).
		WithTitle(pterm.LightYellow("|" + title + "|")).WithTitleTopCenter()
	fmt.Fprintln(r.w, pbox.Sprint(body))
}

func totalLine(total int) string {
	return "total " + pterm.LightGreen(strconv.Itoa(total))
}
