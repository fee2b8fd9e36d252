package editable

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/editable/lib/dom"
)

// Flash levels for toast notifications.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// Flash is a one-time notification shown as a toast.
//
// Gesture responses carry a success flash for every submitted container and
// an error flash with the humanized reason for every failure.
type Flash struct {
	Level   string
	Message string
}

// RenderFlashesOOB renders flashes as an out-of-band swap appending to the
// #toasts container.
func RenderFlashesOOB(flashes []Flash) string {
	if len(flashes) == 0 {
		return ""
	}
	box := dom.NewElement("div",
		dom.Attr{Key: "id", Val: "toasts"},
		dom.Attr{Key: "hx-swap-oob", Val: string(SwapBeforeEnd)},
	)
	for _, f := range flashes {
		toast := dom.NewElement("div",
			dom.Attr{Key: "class", Val: "toast toast-" + f.Level},
			dom.Attr{Key: "data-auto-dismiss", Val: "3000"},
		)
		toast.SetText(f.Message)
		box.Append(toast)
	}
	return dom.OuterHTML(box)
}

// ToastContainer returns the container targeted by flash swaps. Put it near
// the end of <body>.
func ToastContainer() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div id="toasts" class="toast-container"></div>`)
		return err
	})
}
