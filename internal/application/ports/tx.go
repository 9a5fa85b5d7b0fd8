// Package ports define los puertos de salida de la capa de aplicación.
// Los adaptadores viven en infrastructure; los casos de uso solo conocen estos contratos.
package ports

import (
	"context"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace rollback de todo lo escrito; si no, commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}
