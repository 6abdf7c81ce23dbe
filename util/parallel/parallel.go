// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package parallel is a utility package for running parallel/concurrent tasks.
package parallel

import "context"

// Invoke runs the given callbacks concurrently. All the callbacks are run in a
// child of 'ctx'. If any of the callbacks returns an error, Invoke cancels this
// child context, waits for the remaining callbacks to complete, and returns the
// first error. Otherwise, Invoke waits for all the callbacks to complete, then
// returns nil.
func Invoke(ctx context.Context, calls ...func(ctx context.Context) error) error {
	return InvokeN(ctx, len(calls),
		func(ctx context.Context, i int) error {
			return calls[i](ctx)
		})
}

// InvokeN runs the given callback 'n' times concurrently. It invokes the
// callbacks with i=0, i=1, ..., i=n-1 in a child of 'ctx'. If any of the
// callbacks returns an error, InvokeN cancels this child context, waits for the
// remaining callbacks to complete, and returns the first error. Otherwise,
// InvokeN waits for all the callbacks to complete, then returns nil.
func InvokeN(ctx context.Context, n int, call func(ctx context.Context, i int) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ch := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			ch <- call(ctx, i)
		}(i)
	}
	var firstErr error
	for i := 0; i < n; i++ {
		err := <-ch
		if err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}
	return firstErr
}

// Batches splits the half-open range [0, n) into consecutive batches of at most
// 'size' items and runs 'call' concurrently for each batch, as InvokeN does.
// 'batch' is the batch number and [start, end) the range of items it covers. A
// size of zero or less puts everything into a single batch.
func Batches(ctx context.Context, n, size int,
	call func(ctx context.Context, batch, start, end int) error) error {
	if n <= 0 {
		return nil
	}
	if size <= 0 || size > n {
		size = n
	}
	count := (n + size - 1) / size
	return InvokeN(ctx, count, func(ctx context.Context, i int) error {
		start := i * size
		end := start + size
		if end > n {
			end = n
		}
		return call(ctx, i, start, end)
	})
}

// BatchCount returns how many batches Batches would use for the given
// arguments.
func BatchCount(n, size int) int {
	if n <= 0 {
		return 0
	}
	if size <= 0 || size > n {
		return 1
	}
	return (n + size - 1) / size
}
