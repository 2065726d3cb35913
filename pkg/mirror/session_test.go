package mirror

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/seal-io/sftpsync/pkg/target/types"
)

type call struct {
	Op   string
	Path string
}

type node struct {
	isDir    bool
	data     []byte
	children []string
}

// fakeSession is an in-memory types.Session recording every call,
// listings keep insertion order.
type fakeSession struct {
	nodes  map[string]*node
	calls  []call
	closed int
	errs   map[call]error
}

func newFakeSession(dirs ...string) *fakeSession {
	root := &node{isDir: true}

	s := &fakeSession{
		nodes: map[string]*node{"/": root, ".": root},
		errs:  map[call]error{},
	}

	for _, d := range dirs {
		s.addDir(d)
	}

	return s
}

func (s *fakeSession) addDir(p string) {
	p = path.Clean(p)
	if _, ok := s.nodes[p]; ok {
		return
	}

	s.addDir(path.Dir(p))
	s.link(p, &node{isDir: true})
}

func (s *fakeSession) addFile(p, content string) {
	p = path.Clean(p)
	s.addDir(path.Dir(p))
	s.link(p, &node{data: []byte(content)})
}

func (s *fakeSession) link(p string, n *node) {
	parent := s.nodes[path.Dir(p)]
	parent.children = append(parent.children, path.Base(p))
	s.nodes[p] = n
}

func (s *fakeSession) failOn(op, p string, err error) {
	s.errs[call{op, p}] = err
}

func (s *fakeSession) record(op, p string) error {
	s.calls = append(s.calls, call{op, p})
	return s.errs[call{op, p}]
}

// callsOf returns the recorded calls of the given operations, in order.
func (s *fakeSession) callsOf(ops ...string) []call {
	var r []call

	for _, c := range s.calls {
		for _, op := range ops {
			if c.Op == op {
				r = append(r, c)
			}
		}
	}

	return r
}

func (s *fakeSession) Close() error {
	s.closed++
	return s.record("close", "")
}

func (s *fakeSession) Stat(_ context.Context, p string) (types.Entry, error) {
	if err := s.record("stat", p); err != nil {
		return types.Entry{}, err
	}

	n, ok := s.nodes[path.Clean(p)]
	if !ok {
		return types.Entry{}, fmt.Errorf("%w: %s", types.ErrNotExist, p)
	}

	return types.Entry{Name: path.Base(p), IsDir: n.isDir}, nil
}

func (s *fakeSession) ReadDir(_ context.Context, p string) ([]types.Entry, error) {
	if err := s.record("readdir", p); err != nil {
		return nil, err
	}

	n, ok := s.nodes[path.Clean(p)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrNotExist, p)
	}

	r := make([]types.Entry, 0, len(n.children))
	for _, c := range n.children {
		r = append(r, types.Entry{Name: c, IsDir: s.nodes[path.Join(p, c)].isDir})
	}

	return r, nil
}

func (s *fakeSession) Mkdir(_ context.Context, p string) error {
	if err := s.record("mkdir", p); err != nil {
		return err
	}

	p = path.Clean(p)

	if _, ok := s.nodes[p]; ok {
		return errors.New("file exists")
	}

	parent, ok := s.nodes[path.Dir(p)]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrNotExist, path.Dir(p))
	}

	if !parent.isDir {
		return errors.New("not a directory")
	}

	s.link(p, &node{isDir: true})

	return nil
}

func (s *fakeSession) Get(_ context.Context, from string, to io.Writer) error {
	if err := s.record("get", from); err != nil {
		return err
	}

	n, ok := s.nodes[path.Clean(from)]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrNotExist, from)
	}

	_, err := io.Copy(to, bytes.NewReader(n.data))

	return err
}

func (s *fakeSession) Put(_ context.Context, from io.Reader, to string) error {
	if err := s.record("put", to); err != nil {
		return err
	}

	bs, err := io.ReadAll(from)
	if err != nil {
		return err
	}

	to = path.Clean(to)

	parent, ok := s.nodes[path.Dir(to)]
	if !ok || !parent.isDir {
		return fmt.Errorf("%w: %s", types.ErrNotExist, path.Dir(to))
	}

	if n, ok := s.nodes[to]; ok {
		n.data = bs
		return nil
	}

	s.link(to, &node{data: bs})

	return nil
}

func (s *fakeSession) opener(opened *int) types.SessionOpener {
	return func(context.Context) (types.Session, error) {
		*opened++
		return s, nil
	}
}

// tree renders the remote tree below root, directories end with a slash.
func (s *fakeSession) tree(root string) map[string]string {
	r := map[string]string{}

	for p, n := range s.nodes {
		if p == root || !strings.HasPrefix(p, strings.TrimSuffix(root, "/")+"/") {
			continue
		}

		rel := strings.TrimPrefix(p, strings.TrimSuffix(root, "/")+"/")
		if n.isDir {
			r[rel+"/"] = ""
		} else {
			r[rel] = string(n.data)
		}
	}

	return r
}
