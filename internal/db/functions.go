package db

import (
	"database/sql/driver"
	"fmt"

	"modernc.org/sqlite"

	"github.com/erazemk/najdeno/internal/geo"
)

func init() {
	// haversine_km(lat1, lng1, lat2, lng2) mirrors geo.Distance so nearby
	// search gives the same answer in SQL and in Go.
	err := sqlite.RegisterDeterministicScalarFunction("haversine_km", 4,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			coords := make([]float64, 4)
			for i, a := range args {
				switch v := a.(type) {
				case nil:
					return nil, nil
				case float64:
					coords[i] = v
				case int64:
					coords[i] = float64(v)
				default:
					return nil, fmt.Errorf("haversine_km: argument %d has type %T", i+1, a)
				}
			}
			return geo.Distance(
				geo.Point{Lat: coords[0], Lng: coords[1]},
				geo.Point{Lat: coords[2], Lng: coords[3]},
			), nil
		})
	if err != nil {
		panic(fmt.Sprintf("registering haversine_km: %v", err))
	}
}
