// Package logging builds the process-wide slog logger and carries request
// metadata through contexts.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
//	logger.Info("task finished",
//	    "task", "clear-recycle-bin",
//	    "duration_ms", 1234,
//	)
//
// # Request context
//
// Handlers attach the caller's request metadata with WithRequestContext.
// The event log reads it back with GetRequestContext and copies it onto
// audit events. Contexts without request metadata are normal: scheduled
// runs have no caller.
package logging
