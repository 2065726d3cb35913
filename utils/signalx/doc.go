// SPDX-FileCopyrightText: 2017 Kubernetes.
// SPDX-License-Identifier: Apache-2.0

// Package signalx turns shutdown signals into context cancellation,
// so that an in-flight transfer aborts cleanly and its session gets closed.
package signalx
