package main

import (
	"errors"

	"github.com/chazu/tapeworm/server"
)

// serveCommand handles `tapeworm serve`.
func serveCommand(args []string) error {
	var o options
	fs := newFlagSet("serve", &o)
	addr := fs.String("addr", ":4600", "Listen address")
	workers := fs.Int("workers", 0, "Programs that may run at once (default GOMAXPROCS)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return errors.New("serve takes no file arguments")
	}
	if err := o.setup(); err != nil {
		return err
	}

	opts := []server.ServerOption{server.WithTapeSize(o.tapeSize)}
	if o.steps > 0 {
		opts = append(opts, server.WithStepLimit(o.steps))
	}
	if *workers > 0 {
		opts = append(opts, server.WithWorkers(*workers))
	}
	store, err := o.openCache()
	if err != nil {
		log.Warningf("cache disabled: %s", err)
	} else if store != nil {
		defer store.Close()
		opts = append(opts, server.WithCache(store))
	}

	s := server.New(opts...)
	defer s.Stop()
	return s.ListenAndServe(*addr)
}

// lspCommand handles `tapeworm lsp`.
func lspCommand(args []string) error {
	var o options
	fs := newFlagSet("lsp", &o)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := o.setup(); err != nil {
		return err
	}
	pipeline, err := o.pipeline()
	if err != nil {
		return err
	}
	return server.NewLSP(pipeline).Run()
}
