package factory

import "github.com/tailored-agentic-units/fixtures/observability"

// Factory event types.
const (
	EventRegister      observability.EventType = "factory.register"
	EventRegisterState observability.EventType = "factory.register.state"
	EventBuilderNew    observability.EventType = "factory.builder.new"
	EventBuild         observability.EventType = "factory.build"
	EventError         observability.EventType = "factory.error"
)
