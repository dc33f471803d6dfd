// Package templates renders the HTML fragments returned to HTMX callers.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/JonMunkholm/drillbook/internal/importer"
	"github.com/a-h/templ"
)

// maxListedErrors caps the row errors shown inline; the JSON API returns all.
const maxListedErrors = 50

// ErrorAlert renders a dismissible error box with a support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert alert-error" role="alert"><p class="alert-message">%s</p>`,
			templ.EscapeString(message))
		if err != nil {
			return err
		}
		if action != "" {
			if _, err := fmt.Fprintf(w, `<p class="alert-action">%s</p>`, templ.EscapeString(action)); err != nil {
				return err
			}
		}
		_, err = fmt.Fprintf(w, `<p class="alert-code">Code: %s</p></div>`, templ.EscapeString(code))
		return err
	})
}

// PreviewSummary renders the counts and itemized row errors of a preview.
func PreviewSummary(staged importer.StagedImport) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		s := staged.Summary
		_, err := fmt.Fprintf(w,
			`<section class="import-summary" data-total="%d" data-valid="%d" data-invalid="%d">`+
				`<h3>Import preview</h3>`+
				`<ul class="counts"><li>%d rows read</li><li>%d ready to import</li><li>%d with problems</li></ul>`,
			s.TotalRows, s.ValidRows, s.InvalidRows,
			s.TotalRows, s.ValidRows, s.InvalidRows)
		if err != nil {
			return err
		}

		if err := rowErrors(w, s.Errors); err != nil {
			return err
		}

		_, err = io.WriteString(w, `</section>`)
		return err
	})
}

func rowErrors(w io.Writer, errs []importer.RowError) error {
	if len(errs) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, `<ol class="row-errors">`); err != nil {
		return err
	}
	for i, e := range errs {
		if i == maxListedErrors {
			_, err := fmt.Fprintf(w, `<li class="more">and %d more</li>`, len(errs)-maxListedErrors)
			if err != nil {
				return err
			}
			break
		}
		_, err := fmt.Fprintf(w, `<li><span class="row">Row %d</span> %s</li>`, e.Row, templ.EscapeString(e.Message))
		if err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</ol>`)
	return err
}

// CommitSummary renders the outcome of a confirm.
func CommitSummary(result importer.CommitResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<section class="import-result" data-imported="%d" data-skipped="%d">`+
				`<h3>Import complete</h3><ul class="counts"><li>%d drills imported</li><li>%d duplicates skipped</li></ul>`,
			result.Imported, result.Skipped, result.Imported, result.Skipped)
		if err != nil {
			return err
		}

		errs := make([]importer.RowError, len(result.Errors))
		for i, e := range result.Errors {
			errs[i] = importer.RowError{Row: e.Row, Message: e.Error}
		}
		if err := rowErrors(w, errs); err != nil {
			return err
		}

		_, err = io.WriteString(w, `</section>`)
		return err
	})
}
