package rpc

import (
	jsoniter "github.com/json-iterator/go"

	"highcourt/appeal"
	"highcourt/dispute"
	"highcourt/epoch"
	"highcourt/libs/metric"
	"highcourt/registry"
	"highcourt/store"
)

var (
	env  *Environment
	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

func SetEnvironment(e *Environment) {
	env = e
}

type Environment struct {
	Registry *registry.Registry
	Epochs   *epoch.Scheduler
	Disputes *dispute.Manager
	Appeals  *appeal.Manager
	Store    store.Store

	MetricSet *metric.MetricSet
}
