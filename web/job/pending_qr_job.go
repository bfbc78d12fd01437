// Package job contains the scheduled background jobs run by the web server's
// cron instance.
package job

import (
	"qrpanel/logger"
	"qrpanel/web/service"

	"go.uber.org/atomic"
)

// pendingQRBatch caps how many products one run of the job will render.
const pendingQRBatch = 20

// PendingQRJob renders QR codes for products whose raster is still pending.
// Products enter that state on create, update, and manual regeneration; a
// failing product is retried until its attempt budget runs out.
type PendingQRJob struct {
	productService service.ProductService
	qrService      service.QRService

	running atomic.Bool
}

func NewPendingQRJob() *PendingQRJob {
	return new(PendingQRJob)
}

// Run is the cron entry point. A run that outlives the tick interval is not
// overlapped: the next tick is skipped instead.
func (j *PendingQRJob) Run() {
	if !j.running.CompareAndSwap(false, true) {
		logger.Debug("pending qr job still running, skipping tick")
		return
	}
	defer j.running.Store(false)

	products, err := j.productService.GetPendingQRProducts(pendingQRBatch)
	if err != nil {
		logger.Warning("pending qr job:", err)
		return
	}

	for _, product := range products {
		if err := j.qrService.Generate(product); err != nil {
			if recordErr := j.qrService.RecordFailure(product, err); recordErr != nil {
				logger.Warning("record qr failure:", recordErr)
			}
			continue
		}
		logger.Debugf("generated qr code for product %d", product.Id)
	}
}
