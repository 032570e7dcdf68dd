// Package notify builds localized user notifications and delivers them to
// the terminal and the local journal.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pavelanni/submitter/internal/i18n"
	"github.com/pavelanni/submitter/internal/model"
)

// Notifier delivers a notification. Delivery is fire-and-forget.
type Notifier interface {
	Notify(n model.Notification, project model.Project)
}

// Func adapts a function to Notifier.
type Func func(n model.Notification, project model.Project)

func (f Func) Notify(n model.Notification, project model.Project) { f(n, project) }

// Multi fans a notification out to several notifiers in order.
type Multi []Notifier

func (m Multi) Notify(n model.Notification, project model.Project) {
	for _, nt := range m {
		nt.Notify(n, project)
	}
}

func build(ctx context.Context, kind model.NotificationKind, level model.NotificationLevel, msgID string, data map[string]any) model.Notification {
	return model.Notification{
		Kind:      kind,
		Level:     level,
		Title:     i18n.T(ctx, msgID+"Title"),
		Content:   i18n.Td(ctx, msgID+"Content", data),
		CreatedAt: time.Now(),
	}
}

func ExerciseNotSelected(ctx context.Context) model.Notification {
	return build(ctx, model.NotifyExerciseNotSelected, model.LevelWarning, "ExerciseNotSelected", nil)
}

func NotSubmittable(ctx context.Context) model.Notification {
	return build(ctx, model.NotifyNotSubmittable, model.LevelError, "NotSubmittable", nil)
}

func MissingModule(ctx context.Context, moduleName string) model.Notification {
	return build(ctx, model.NotifyMissingModule, model.LevelError, "MissingModule",
		map[string]any{"Module": moduleName})
}

func MissingFile(ctx context.Context, path, name string) model.Notification {
	return build(ctx, model.NotifyMissingFile, model.LevelError, "MissingFile",
		map[string]any{"Path": path, "Name": name})
}

func NetworkError(ctx context.Context, cause error) model.Notification {
	return build(ctx, model.NotifyNetworkError, model.LevelError, "NetworkError",
		map[string]any{"Cause": fmt.Sprint(cause)})
}

func LocalError(ctx context.Context, cause error) model.Notification {
	return build(ctx, model.NotifyLocalError, model.LevelError, "LocalError",
		map[string]any{"Cause": fmt.Sprint(cause)})
}

func SubmissionSent(ctx context.Context) model.Notification {
	return build(ctx, model.NotifySubmissionSent, model.LevelInfo, "SubmissionSent", nil)
}

func FeedbackAvailable(ctx context.Context, exercise string, status model.SubmissionStatus) model.Notification {
	return build(ctx, model.NotifyFeedbackAvailable, model.LevelInfo, "FeedbackAvailable", map[string]any{
		"Exercise":  exercise,
		"Points":    strconv.Itoa(status.Points),
		"MaxPoints": strconv.Itoa(status.MaxPoints),
	})
}

func SubmissionFailed(ctx context.Context, exercise string, state model.SubmissionState) model.Notification {
	return build(ctx, model.NotifySubmissionFailed, model.LevelError, "SubmissionFailed",
		map[string]any{"Exercise": exercise, "Status": string(state)})
}

func StatusUnknown(ctx context.Context, exercise string) model.Notification {
	return build(ctx, model.NotifyStatusUnknown, model.LevelWarning, "StatusUnknown",
		map[string]any{"Exercise": exercise})
}
