package geocoding

import (
	"landmatch_backend/internal/cities"
	"landmatch_backend/platform/config"
	"landmatch_backend/platform/logger"
)

// BuildConfig is the configuration a process-wide resolver needs.
type BuildConfig interface {
	config.GeocodingConfig
	config.RedisConfig
}

// Build assembles the resolver over the embedded reference table and
// Nominatim. A Redis tier is added when REDIS_URL is set. The returned func
// releases the Redis client.
func Build(cfg BuildConfig, log *logger.Logger) (*Service, func(), error) {
	opts := OptionsFromConfig(cfg)
	closer := func() {}

	if url := cfg.GetRedisURL(); url != "" {
		client, err := NewRedisClient(url)
		if err != nil {
			return nil, nil, err
		}
		opts.Shared = NewRedisCache(client, cfg.GetGeocodeRedisTTL(), cfg.GetGeocodeNegativeTTL())
		closer = func() { _ = client.Close() }
	} else {
		log.Warn("REDIS_URL not configured; coordinate cache is per process")
	}

	svc := New(cities.Default(), NewNominatimClient(cfg, log), opts, log)
	return svc, closer, nil
}
