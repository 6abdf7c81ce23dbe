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

package parallel

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

// It's easy to implement a concurrent map operation using InvokeN.
func ExampleInvokeN_map() {
	ctx := context.Background()
	isEven := func(x int) bool {
		return x%2 == 0
	}
	in := []int{5, 6, 7}
	res := make([]bool, 3)
	_ = InvokeN(ctx, len(in), func(ctx context.Context, i int) error {
		res[i] = isEven(in[i])
		return nil
	})
	fmt.Printf("result: %v\n", res)
	// Output:
	// result: [false true false]
}

func ExampleBatches() {
	in := []string{"a", "b", "c", "d", "e"}
	out := make([]string, BatchCount(len(in), 2))
	_ = Batches(context.Background(), len(in), 2, func(ctx context.Context, batch, start, end int) error {
		out[batch] = fmt.Sprint(in[start:end])
		return nil
	})
	fmt.Println(out)
	// Output:
	// [[a b] [c d] [e]]
}

func Test_Invoke_basic(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	err := Invoke(ctx)
	assert.NoError(err)

	res := make([]int, 3)
	err = Invoke(ctx,
		func(ctx context.Context) error { res[0] = 5; return ctx.Err() },
		func(ctx context.Context) error { res[1] = 6; return errors.New("roar") },
		func(ctx context.Context) error { res[2] = 7; return ctx.Err() },
	)
	assert.EqualError(err, "roar")
	assert.Equal([]int{5, 6, 7}, res)
}

func Test_InvokeN_earlyExit(t *testing.T) {
	assert := assert.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err := InvokeN(ctx, 10, func(ctx context.Context, i int) error {
		if i == 0 {
			return errors.New("failure")
		}
		<-ctx.Done()
		return ctx.Err()
	})
	assert.EqualError(err, "failure")
	assert.NoError(ctx.Err())
}

func Test_Batches(t *testing.T) {
	tests := []struct {
		n, size int
		batches int
	}{
		{n: 0, size: 10, batches: 0},
		{n: 1, size: 10, batches: 1},
		{n: 10, size: 10, batches: 1},
		{n: 11, size: 10, batches: 2},
		{n: 25, size: 5, batches: 5},
		{n: 7, size: 0, batches: 1},
		{n: 7, size: -3, batches: 1},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("n=%d,size=%d", test.n, test.size), func(t *testing.T) {
			assert.Equal(t, test.batches, BatchCount(test.n, test.size))
			var calls, items int32
			err := Batches(context.Background(), test.n, test.size,
				func(ctx context.Context, batch, start, end int) error {
					atomic.AddInt32(&calls, 1)
					atomic.AddInt32(&items, int32(end-start))
					assert.True(t, batch < test.batches)
					return nil
				})
			assert.NoError(t, err)
			assert.Equal(t, int32(test.batches), calls)
			assert.Equal(t, int32(test.n), items)
		})
	}
}

func Test_Batches_error(t *testing.T) {
	err := Batches(context.Background(), 10, 3, func(ctx context.Context, batch, start, end int) error {
		if batch == 2 {
			return errors.New("batch failed")
		}
		return nil
	})
	assert.EqualError(t, err, "batch failed")
}
