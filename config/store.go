package config

import (
	"go.uber.org/zap"

	"acss/common"
	"acss/manifest"
)

// OpenUsage opens usage store of configured backend. It never shares a lock
// with the manifest.
func (conf *StoreConfig) OpenUsage(log *zap.Logger) (manifest.Store[manifest.Usage], error) {
	if conf.UsageBackend == common.UsageBackendSqlite {
		s, err := manifest.OpenSQLiteUsage(conf.Usage, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := manifest.OpenFile[manifest.Usage](conf.Usage, manifest.UsageVersion, log)
	if err != nil {
		return nil, err
	}
	return s, nil
}
