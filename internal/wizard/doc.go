// Package wizard implements the dataset-preparation wizard core: the
// stage gate that decides which wizard tab is reachable, the per-stage
// preview cache, and the transition controller that advances the session
// in response to confirmed platform responses.
//
// The package is deliberately UI-free. Callers (the HTTP transport)
// obtain an immutable Snapshot of the session, evaluate the pure gate
// functions against it, and feed confirmed collaborator responses back
// in as Events. All session mutation happens inside the Controller;
// optimistic client-side advancement is not possible through this API.
package wizard
