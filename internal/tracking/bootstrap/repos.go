package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/adapters/out/repo"
	out "github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/application/ports/out"
)

type repos struct {
	bus      out.BusRepository
	location out.LocationRepository
	route    out.RouteRepository
}

func repoBundle(pool *pgxpool.Pool) repos {
	return repos{
		bus:      repo.NewBusPgRepository(pool),
		location: repo.NewLocationPgRepository(pool),
		route:    repo.NewRoutePgRepository(pool),
	}
}
