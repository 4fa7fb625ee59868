//go:build !unix

package singleinstance

type noLock struct{ path string }

func acquire(path string) (Lock, error) { return noLock{path: path}, nil }

func (l noLock) Path() string { return l.path }

func (noLock) Release() error { return nil }
