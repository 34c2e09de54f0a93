package db

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/AlexandrKovin/RideShare/pkg/config"
	"github.com/AlexandrKovin/RideShare/pkg/rslog"
)

// Pools holds the connection pools for the master and the optional slave
// node. Writes always go to the master; reads prefer the slave.
type Pools struct {
	master *pgxpool.Pool
	slave  *pgxpool.Pool
}

func connectNode(ctx context.Context, node config.PostgresNode) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(node.DSN())
	if err != nil {
		return nil, eris.Wrap(err, "Failed to parse the Postgres DSN")
	}

	poolConfig.ConnConfig.Logger = rslog.PgxLogger{}
	poolConfig.ConnConfig.LogLevel = pgx.LogLevelDebug

	pool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, eris.Wrap(err, "Failed to connect to Postgres")
	}

	return pool, nil
}

// Connect opens the pools described by the config
func Connect(ctx context.Context, cfg *config.Config) (*Pools, error) {
	master, err := connectNode(ctx, cfg.Postgres.Master)
	if err != nil {
		return nil, err
	}

	pools := &Pools{master: master}
	if cfg.Postgres.Slave.Configured() {
		pools.slave, err = connectNode(ctx, cfg.Postgres.Slave)
		if err != nil {
			master.Close()
			return nil, err
		}
	}

	return pools, nil
}

// NewPools wraps already opened pools; the slave may be nil
func NewPools(master, slave *pgxpool.Pool) *Pools {
	return &Pools{master: master, slave: slave}
}

// Writer returns the pool for statements that modify data
func (p *Pools) Writer() *pgxpool.Pool {
	return p.master
}

// Reader returns the pool for plain queries. Without a configured slave the
// master serves reads as well.
func (p *Pools) Reader() *pgxpool.Pool {
	if p.slave != nil {
		return p.slave
	}

	return p.master
}

// Ping checks both nodes
func (p *Pools) Ping(ctx context.Context) error {
	err := p.master.Ping(ctx)
	if err != nil {
		return eris.Wrap(err, "master not reachable")
	}

	if p.slave != nil {
		err = p.slave.Ping(ctx)
		if err != nil {
			return eris.Wrap(err, "slave not reachable")
		}
	}

	return nil
}

// Close shuts down all pools
func (p *Pools) Close() {
	p.master.Close()
	if p.slave != nil {
		p.slave.Close()
	}
}
