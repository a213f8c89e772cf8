package web

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/kuncheriajose/firehawk-frontend/internal/core"
)

// Page renders the table page for a view: the filter form, the active
// filter badge, sortable column headers and one row per visible record.
func Page(v core.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}

		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<title>Car Database</title>`)
		p.raw(`<style>` + pageStyle + `</style></head><body>`)
		p.raw(`<h1>Car Database</h1>`)

		filterForm(p, v)

		p.raw(`<p class="summary">Showing `)
		p.text(strconv.Itoa(len(v.Records)))
		p.raw(` of `)
		p.text(strconv.Itoa(v.Total))
		p.raw(` vehicles`)
		if v.ActiveCount > 0 {
			p.raw(` <span class="badge">`)
			p.text(fmt.Sprintf("%d active", v.ActiveCount))
			p.raw(`</span>`)
		}
		p.raw(` <a href="/api/export">Download CSV</a></p>`)

		table(p, v)

		p.raw(`</body></html>`)
		return p.err
	})
}

func filterForm(p *pageWriter, v core.View) {
	p.raw(`<form method="post" action="/" class="filters">`)

	p.raw(`<input type="search" name="searchTerm" placeholder="Search" value="`)
	p.text(v.Spec.SearchTerm)
	p.raw(`">`)

	selectInput(p, "makeFilter", "All makes", v.Options.Makes, v.Spec.MakeFilter)
	selectInput(p, "cylindersFilter", "All cylinders", v.Options.Cylinders, v.Spec.CylindersFilter)

	p.raw(`<button type="submit">Apply</button>`)
	p.raw(`<button type="submit" name="action" value="clear">Clear filters</button>`)
	p.raw(`</form>`)
}

func selectInput(p *pageWriter, name, placeholder string, choices []string, selected string) {
	p.raw(`<select name="` + name + `"><option value="">`)
	p.text(placeholder)
	p.raw(`</option>`)
	for _, c := range choices {
		p.raw(`<option value="`)
		p.text(c)
		p.raw(`"`)
		if c == selected {
			p.raw(` selected`)
		}
		p.raw(`>`)
		p.text(c)
		p.raw(`</option>`)
	}
	p.raw(`</select>`)
}

func table(p *pageWriter, v core.View) {
	if v.Columns.Empty() {
		p.raw(`<p class="empty">No vehicles loaded.</p>`)
		return
	}

	p.raw(`<table><thead><tr>`)
	for _, col := range v.Columns.Columns {
		p.raw(`<th><form method="post" action="/sort/`)
		p.text(url.PathEscape(col))
		p.raw(`"><button type="submit">`)
		p.text(col)
		p.raw(` <span class="material-icons">`)
		p.text(v.Sort.Icon(col))
		p.raw(`</span></button></form></th>`)
	}
	p.raw(`</tr></thead><tbody>`)

	for _, r := range v.Records {
		p.raw(`<tr>`)
		for _, col := range v.Columns.Columns {
			p.raw(`<td>`)
			p.text(r.Get(col).String())
			p.raw(`</td>`)
		}
		p.raw(`</tr>`)
	}
	p.raw(`</tbody></table>`)
}

// pageWriter writes until the first error.
type pageWriter struct {
	w   io.Writer
	err error
}

func (p *pageWriter) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *pageWriter) text(s string) {
	p.raw(templ.EscapeString(s))
}

const pageStyle = `body{font-family:sans-serif;margin:2rem}
table{border-collapse:collapse;width:100%}
th,td{border-bottom:1px solid #ddd;padding:.4rem;text-align:left}
th button{background:none;border:0;font-weight:bold;cursor:pointer}
.filters{display:flex;gap:.5rem;margin-bottom:1rem}
.badge{background:#1565c0;color:#fff;border-radius:1rem;padding:0 .5rem}
.material-icons{font-size:.8em;color:#666}`
