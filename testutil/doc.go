// Package testutil provides test doubles and SCL fixtures: an in-memory
// edit bus matching the natsclient publish/subscribe surface, and the
// fixture documents the matcher and adapter tests share.
package testutil
