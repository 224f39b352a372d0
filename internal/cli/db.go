package cli

import (
	"context"
	"database/sql"
	"fmt"

	"physiosite/api/internal/wire"
)

func openDatabase(ctx context.Context, s *session) (*sql.DB, error) {
	db, err := wire.Database(ctx, s.cfg)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	return db, nil
}
