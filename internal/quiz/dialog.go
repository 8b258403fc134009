package quiz

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

const DefaultDialogTitle = "Open quiz file"

// FilePicker asks the host for a file. An empty path means the user cancelled.
type FilePicker interface {
	PickFile(ctx context.Context, title string, extensions []string) (string, error)
}

// FilePickerFunc adapts a function to FilePicker.
type FilePickerFunc func(ctx context.Context, title string, extensions []string) (string, error)

func (f FilePickerFunc) PickFile(ctx context.Context, title string, extensions []string) (string, error) {
	return f(ctx, title, extensions)
}

// OpenFunc loads the file chosen through the dialog.
type OpenFunc func(ctx context.Context, path string) error

// Dialog allows at most one outstanding file request at a time.
type Dialog struct {
	Picker     FilePicker
	Open       OpenFunc
	Title      string
	Extensions []string
	Logger     logrus.FieldLogger

	outstanding atomic.Bool
}

// RequestFile asks the picker for a path and opens it. A call made while another request is
// still waiting on the picker returns nil without contacting the picker. Picker failures and
// cancellations are logged and dropped; only the error from opening a chosen file is returned.
func (d *Dialog) RequestFile(ctx context.Context) error {
	if d.Picker == nil {
		return nil
	}
	if !d.outstanding.CompareAndSwap(false, true) {
		return nil
	}

	path, err := d.pick(ctx)
	if err != nil {
		d.logger().WithError(err).Warn("file dialog failed")
		return nil
	}
	path = strings.TrimSpace(path)
	if path == "" || d.Open == nil {
		return nil
	}
	return d.Open(ctx, path)
}

// Outstanding reports whether a request is waiting on the picker.
func (d *Dialog) Outstanding() bool {
	return d.outstanding.Load()
}

func (d *Dialog) pick(ctx context.Context) (string, error) {
	defer d.outstanding.Store(false)

	title := d.Title
	if title == "" {
		title = DefaultDialogTitle
	}
	extensions := d.Extensions
	if len(extensions) == 0 {
		extensions = []string{".csv"}
	}
	return d.Picker.PickFile(ctx, title, extensions)
}

func (d *Dialog) logger() logrus.FieldLogger {
	if d.Logger == nil {
		return logrus.StandardLogger()
	}
	return d.Logger
}
