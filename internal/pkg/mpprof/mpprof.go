package mpprof

import (
	"go-friendship/internal/pkg/log"
	"net"
	"net/http"
	"net/http/pprof"
)

func RegisterPprof(addr string) {
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		panic(err)
	}
	s := http.Server{
		Handler: mux,
	}
	log.Infof("pprof run on %s", ln.Addr())
	go s.Serve(ln)
}
