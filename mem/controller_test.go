// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	config interface{}
	err    error
}

func (c *fakeController) Init(config interface{}) error {
	c.config = config
	return c.err
}

func TestInit(t *testing.T) {
	c := &fakeController{err: errors.New("no device")}

	err := Init(c, DefaultPSRAMConfig)
	require.Error(t, err)
	assert.False(t, Ready())

	c.err = nil

	require.NoError(t, Init(c, DefaultPSRAMConfig))
	assert.True(t, Ready())
	assert.Same(t, DefaultPSRAMConfig, c.config)

	assert.Error(t, Init(nil, nil))
}
