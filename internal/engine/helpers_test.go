package engine_test

import "go.uber.org/zap"

func zapNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
