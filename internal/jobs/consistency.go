package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// checkTimeout tiempo máximo de una verificación de consistencia.
const checkTimeout = 2 * time.Minute

// ConsistencyChecker verifica periódicamente que los balances cacheados
// coincidan con los recalculados desde el kardex. Un desfase no es fatal:
// se registra con severidad alta y el proyector se repara en el acto.
type ConsistencyChecker struct {
	projector *ledger.Projector
	logg      *logger.Logger
}

// NewConsistencyChecker construye el verificador.
func NewConsistencyChecker(projector *ledger.Projector, logg *logger.Logger) *ConsistencyChecker {
	return &ConsistencyChecker{projector: projector, logg: logg}
}

// Run ejecuta una verificación y devuelve cuántas claves presentaron desfase.
func (c *ConsistencyChecker) Run(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	drifted, err := c.projector.Verify(ctx)
	if err != nil {
		c.logg.Error().Err(err).Msg("verificación de consistencia fallida")
		return 0, err
	}
	if len(drifted) > 0 {
		c.logg.Error().Int("claves", len(drifted)).Msg("desfase de proyección reparado tras verificación")
	} else {
		c.logg.Debug().Msg("verificación de consistencia sin desfases")
	}
	return len(drifted), nil
}

// Schedule registra la verificación en el scheduler con la expresión cron dada
// y lo arranca. Devuelve el scheduler para detenerlo en el shutdown.
func (c *ConsistencyChecker) Schedule(spec string) (*cron.Cron, error) {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(spec, func() {
		_, _ = c.Run(context.Background())
	})
	if err != nil {
		return nil, err
	}
	scheduler.Start()
	c.logg.Info().Str("cron", spec).Msg("verificación periódica de consistencia programada")
	return scheduler, nil
}
