package ui

import "github.com/papapumpkin/syllabus/internal/lint"

// LintResult prints a check chain outcome: a summary line, then each check
// with its findings.
func (p *Printer) LintResult(name string, skills, units int, r *lint.Result) {
	switch ff := r.FirstFailure(); {
	case ff != nil:
		p.printf("%s catalog %q: %s check failed\n", styleDanger.Render(iconFailed), name, ff.Name)
	case r.Warnings() > 0:
		p.printf("%s catalog %q: %d skill%s, %d unit%s, %d warning%s\n",
			styleWarning.Render(iconWarning), name, skills, pluralS(skills), units, pluralS(units),
			r.Warnings(), pluralS(r.Warnings()))
	default:
		p.printf("%s catalog %q: %d skill%s, %d unit%s, no errors\n",
			styleSuccess.Render(iconDone), name, skills, pluralS(skills), units, pluralS(units))
	}

	for _, c := range r.Checks {
		icon := styleSuccess.Render(iconDone)
		switch {
		case !c.Passed && c.Advisory:
			icon = styleWarning.Render(iconWarning)
		case !c.Passed:
			icon = styleDanger.Render(iconFailed)
		}
		p.printf("  %s %s %s\n", icon, c.Name, styleMuted.Render(c.Elapsed.String()))
		for _, f := range c.Findings {
			p.printf("     %s %s\n", styleMuted.Render(iconBullet), f)
		}
	}
}
