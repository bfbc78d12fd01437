package job

import (
	"qrpanel/logger"
	"qrpanel/web/service"
)

// OrphanQRJob sweeps QR files no product references anymore. Orphans appear
// when a crash lands between writing a new raster and deleting the old one;
// regeneration always writes before it deletes.
type OrphanQRJob struct {
	qrService service.QRService
}

func NewOrphanQRJob() *OrphanQRJob {
	return new(OrphanQRJob)
}

func (j *OrphanQRJob) Run() {
	removed, err := j.qrService.SweepOrphans()
	if err != nil {
		logger.Warning("orphan qr sweep:", err)
		return
	}
	if removed > 0 {
		logger.Infof("orphan qr sweep removed %d files", removed)
	}
}
