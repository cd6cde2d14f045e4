// Package client fetches status snapshots from an opsboard server over
// HTTP. It is the Fetcher used by scheduler.Poller in the watch command.
//
// Every request appends a fresh t=<unix ms> query parameter and asks for
// JSON. Non-2xx responses return *FetchError, whose message is the short
// "status fetch failed (503)" form shown to the user.
package client
