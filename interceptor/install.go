package interceptor

import (
	"github.com/pkg/errors"

	"github.com/CherkashinEvgeny/goadvice/aspect"
)

// Install binds the logging advice to every marker of r. When metrics is
// not nil each advice execution is counted too.
func Install(r *aspect.Registry, logging *Logging, metrics *Metrics) error {
	if logging == nil {
		return errors.Wrap(aspect.ErrNilHandler, "install logging advice")
	}
	for _, marker := range aspect.Markers() {
		var err error
		if marker == aspect.Around {
			handler := aspect.AroundHandler(logging.Around)
			if metrics != nil {
				handler = aspect.ChainAround(metrics.ObserveAround, logging.Around)
			}
			err = r.RegisterAround(handler)
		} else {
			container := aspect.Container{}
			container.Register(logging.Handler(marker))
			if metrics != nil {
				container.Register(metrics.Observe)
			}
			err = r.Register(marker, container.Handler())
		}
		if err != nil {
			return errors.Wrapf(err, "install %s advice", marker)
		}
	}
	return nil
}
