// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package biosimd provides table-driven operations on ASCII nucleotide
// sequences that sit on the read alignment hot path: cleaning, reverse
// complementing, and base-quality summation.
package biosimd
