// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

/*
Package supervisor runs the front-end's long-lived services under a suture v4
supervisor tree.

	RootSupervisor ("movie-agent-demo")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   ├── SessionSweeperService
	│   └── LogCleanupService (when file logging is enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with backoff. Canceling the context passed to
Serve stops every service, each given TreeConfig.ShutdownTimeout to finish.

Supervisor events go through sutureslog to the slog adapter in package
logging, so they land in the same zerolog stream as everything else.

Example:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, addr, 10*time.Second))
	tree.AddMaintenanceService(services.NewSessionSweeperService(sweeper))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return tree.Serve(ctx)
*/
package supervisor
