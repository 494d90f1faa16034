/*
Package cli provides the helpers shared by the housekeeper commands.

Output Formatting:

Command results implement Table and are rendered as aligned text, JSON
or CSV:

	formatter, err := cli.NewFormatter(cli.FormatText)
	if err != nil {
		return err
	}
	return formatter.FormatTo(os.Stdout, taskList)

Progress Reporting:

Seeding a database reports how many records were written:

	progress := cli.NewProgressReporter(os.Stderr, "records")
	progress.Start(total)
	progress.Update(n)
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	for range cli.ReloadSignals(ctx) {
		// re-read configuration
	}

Exit Codes:

ExitCode maps a command error to the process exit status.
*/
package cli
