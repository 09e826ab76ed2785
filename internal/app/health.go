package app

import (
	grpcsrv "github.com/godilite/survey-form/pkg/grpc/server"
)

// upstreamHealth publishes the scoring service's reachability on the ops
// health endpoint.
type upstreamHealth struct {
	server  *grpcsrv.Server
	service string
}

func (u upstreamHealth) ReportUpstream(healthy bool) {
	u.server.SetServing(u.service, healthy)
}
