// Package intersection provides an embeddable traffic-intersection
// controller.
//
// An Intersection sequences signal phases on a phase timer, accepts
// pedestrian and emergency requests concurrently, and can be run as the
// trafficd command or embedded as a library in other Go programs.
//
// # Basic Usage
//
//	cfg := intersection.DefaultConfig()
//	cfg.Timings.Green = 10 * time.Second
//
//	x, err := intersection.New(cfg, intersection.WithInput(os.Stdin))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := x.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
//	<-x.Done() // operator pressed q
//
//	if err := x.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// # Operator Commands
//
// Commands arrive either as console keys (see [WithInput]) or through
// [Intersection.Submit]: [CommandPedestrianNS] and [CommandPedestrianEW]
// request a pedestrian crossing, [CommandToggleEmergency] enters or leaves
// emergency mode, and [CommandQuit] ends the run. Pedestrian requests made
// while EMERGENCY is displayed are dropped.
//
// # Event Handling
//
// Implement [EventHandler] (embedding [BaseEventHandler]) and pass it via
// [WithEventHandler] to observe lifecycle transitions, phase commits and
// operator requests. Handlers run on the controller and input goroutines and
// must return quickly.
//
// # Lifecycle States
//
// An Intersection can be in one of five states: [StateStopped],
// [StateStarting], [StateRunning], [StateStopping], or [StateCrashed]. Use
// [Intersection.Status] to query the current state.
//
// # Plugins
//
// Optional behavior shares the intersection's lifetime through [Plugin]:
//
//	import "github.com/bft-labs/trafficd/plugins/configwatcher"
//
//	x, err := intersection.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{Path: path}),
//	)
package intersection
