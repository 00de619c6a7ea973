// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build !tamago
// +build !tamago

package mem

func mapWindow(_ uint, _ int) (*Window, error) {
	return nil, ErrUnmapped
}
