package telemetry

import (
	"fmt"
	"sync"

	"go.opencensus.io/stats/view"
)

var registerViewsOnce sync.Once //nolint:gochecknoglobals

// Views are global in opencensus, so they are registered once no matter how many managers exist.
func registerViews() (err error) {
	registerViewsOnce.Do(func() {
		err = view.Register(getViews()...)
		if err != nil {
			err = fmt.Errorf("error registering metrics views: %w", err)
		}
	})
	return err
}
