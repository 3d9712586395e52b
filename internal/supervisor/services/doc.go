// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

/*
Package services adapts components whose lifecycle is not already a
suture.Service.

Most Buzzstream components (dispatcher, sweeper, ingestor, tweet store,
response cache) implement Serve(ctx) themselves and are added to the tree
directly. The two wrappers here translate the remaining patterns:

ListenAndServe (HTTPServerService):

	server := &http.Server{Addr: cfg.Server.Addr(), Handler: router.Handler()}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

Start/Stop (ProducerService):

	tree.AddMessagingService(services.NewProducerService(svc, cfg.Stream.AutoStart))

Both report themselves through fmt.Stringer so suture's event log names
them.
*/
package services
