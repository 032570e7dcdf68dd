package handler

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/pavelanni/submitter/internal/i18n"
	"github.com/pavelanni/submitter/internal/model"
)

const pageStyle = `body{font-family:system-ui,sans-serif;max-width:60rem;margin:2rem auto;padding:0 1rem}
table{border-collapse:collapse;width:100%}td,th{padding:.3rem .6rem;border-bottom:1px solid #ddd;text-align:left}
.ready{color:#27ae60}.rejected,.error{color:#c0392b}.waiting,.initialized{color:#7f8c8d}.unknown{color:#e67e22}
.note{margin:.4rem 0}.note small{color:#7f8c8d}`

// FeedPage renders tracked submissions and recent notifications.
func FeedPage(submissions []model.SubmissionRecord, notifications []model.Notification) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := templ.EscapeString(i18n.T(ctx, "FeedTitle"))
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html><head><meta charset="utf-8"><title>%s</title><style>%s</style></head><body><h1>%s</h1>`,
			title, pageStyle, title); err != nil {
			return err
		}
		if err := submissionTable(submissions).Render(ctx, w); err != nil {
			return err
		}
		if err := notificationList(notifications).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

func submissionTable(submissions []model.SubmissionRecord) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(submissions) == 0 {
			_, err := fmt.Fprintf(w, `<p>%s</p>`, templ.EscapeString(i18n.T(ctx, "FeedEmpty")))
			return err
		}
		if _, err := fmt.Fprintf(w, `<table><thead><tr><th>#</th><th>%s</th><th>%s</th><th>%s</th><th>%s</th></tr></thead><tbody>`,
			templ.EscapeString(i18n.T(ctx, "FeedExercise")), templ.EscapeString(i18n.T(ctx, "FeedStatus")),
			templ.EscapeString(i18n.T(ctx, "FeedPoints")), templ.EscapeString(i18n.T(ctx, "FeedSubmitted"))); err != nil {
			return err
		}
		for _, s := range submissions {
			_, err := fmt.Fprintf(w,
				`<tr><td>%d</td><td><a href="%s">%s</a></td><td class="%s">%s</td><td>%s</td><td title="%s">%s</td></tr>`,
				s.SubmissionNumber,
				templ.EscapeString(s.URL), templ.EscapeString(s.ExerciseName),
				templ.EscapeString(string(s.State)), templ.EscapeString(string(s.State)),
				points(s),
				s.SubmittedAt.Format("2006-01-02 15:04:05"), humanize.Time(s.SubmittedAt),
			)
			if err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</tbody></table>`)
		return err
	})
}

func points(s model.SubmissionRecord) string {
	if s.Points == nil || s.MaxPoints == nil {
		return ""
	}
	return fmt.Sprintf("%d/%d", *s.Points, *s.MaxPoints)
}

func notificationList(notifications []model.Notification) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(notifications) == 0 {
			return nil
		}
		if _, err := fmt.Fprintf(w, `<h2>%s</h2>`, templ.EscapeString(i18n.T(ctx, "FeedNotifications"))); err != nil {
			return err
		}
		for _, n := range notifications {
			_, err := fmt.Fprintf(w, `<div class="note %s"><strong>%s</strong> %s <small>%s</small></div>`,
				templ.EscapeString(string(n.Level)),
				templ.EscapeString(n.Title), templ.EscapeString(n.Content),
				humanize.Time(n.CreatedAt))
			if err != nil {
				return err
			}
		}
		return nil
	})
}
