// Package logger provides the structured logging interface used across imgdataset.
//
// It wraps zerolog and exposes a small interface with leveled methods,
// field helpers and a process-wide default instance:
//
//	cfg := &config.LoggingConfig{Level: "info"}
//	if err := logger.Initialize(cfg); err != nil {
//	    return err
//	}
//
//	log := logger.GetLogger()
//	log.WithField("label", "cat").Info("dictionary saved")
//	log.WithError(err).Error("failed to fetch image")
//
// Components accept a Logger in their constructors and fall back to
// GetLogger() when given nil. Tests use NewTestLogger to capture messages
// or NewNopLogger to discard them.
package logger
