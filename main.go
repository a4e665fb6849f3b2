package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/abesuite/gaopool/dal"
	"github.com/abesuite/gaopool/utils"
)

var (
	cfg *config
)

func startProfileServer() {
	listenAddr := net.JoinHostPort("localhost", cfg.ProfilePort)
	poolLog.Infof("Profile server listening on %s", listenAddr)
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	poolLog.Errorf("%v", http.ListenAndServe(listenAddr, mux))
}

// poolMain is the real main function for gaopoold.  It is necessary to work
// around the fact that deferred functions do not run when os.Exit() is called.
func poolMain() error {
	// Load configuration and parse command line. This function also
	// initializes logging and configures it accordingly.
	tcfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = tcfg
	poolLog.Infof("Node: %v", utils.GetNodeDesc())

	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	// Get a channel that will be closed when a shutdown signal has been
	// triggered either from an OS signal such as SIGINT (Ctrl+C).
	interrupt := interruptListener()
	defer poolLog.Info("Shutdown complete")

	// Enable http profiling server if requested.
	if cfg.ProfilePort != "" {
		go func() {
			startProfileServer()
		}()
	}

	// initiate database
	err = dal.InitDB(&dal.DBConfig{
		Type:         cfg.DbType,
		Username:     cfg.DbUsername,
		Password:     cfg.DbPassword,
		Address:      cfg.DbAddress,
		DatabaseName: cfg.DbName,
		Path:         cfg.DbPath,
	}, !cfg.DisableAutoCreateDB)
	if err != nil {
		poolLog.Errorf("Unable to open database: %v", err)
		return err
	}

	// Return now if an interrupt signal was triggered.
	if interruptRequested(interrupt) {
		return nil
	}

	// create and start server, including pool rpc server and reward manager
	svr, err := newServer(context.Background(), cfg)
	if err != nil {
		poolLog.Errorf("Unable to start server: %v", err)
		return err
	}
	defer func() {
		poolLog.Infof("Gracefully shutting down the server...")
		svr.Stop()
	}()
	svr.Start()

	// Wait until the interrupt signal is received from an OS signal.
	<-interrupt
	return nil
}

func main() {
	// Use all processor cores.
	runtime.GOMAXPROCS(runtime.NumCPU())

	// Ledger operations allocate a burst of big integers per request.  This
	// limits the garbage collector from excessively overallocating during
	// bursts.
	debug.SetGCPercent(10)

	if err := poolMain(); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}
