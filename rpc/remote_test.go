package rpc

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/lathe/java"
	"github.com/jward/lathe/java/jtype"
	"github.com/jward/lathe/java/recipes"
	"github.com/jward/lathe/recipe"
	"github.com/jward/lathe/tree"
)

const helperSource = `package com.example;

class Helper {
    int twice(int n) {
        return n * 2;
    }
}
`

// startServer serves one run on the far end of a connection pair.
func startServer(t *testing.T, srv *Server) (Conn, <-chan error) {
	t.Helper()
	client, server := connPair()
	errc := make(chan error, 1)
	go func() {
		defer server.Close()
		errc <- srv.Serve(context.Background(), server)
	}()
	t.Cleanup(func() { client.Close() })
	return client, errc
}

func remoteRun(t *testing.T, srv *Server, req RunRequest, files ...tree.SourceFile) (*recipe.RunResult, error, error) {
	t.Helper()
	conn, errc := startServer(t, srv)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rr := NewRemoteRunner(conn, JavaCodecs(), NewMemoryCache(), jtype.NewInterner())
	res, err := rr.Run(ctx, req, files)
	select {
	case serveErr := <-errc:
		return res, err, serveErr
	case <-ctx.Done():
		t.Fatal("server did not finish")
		return nil, nil, nil
	}
}

// =============================================================================
// Remote execution
// =============================================================================

func TestRemoteRunner_RenamesAndReusesUnchangedNodes(t *testing.T) {
	t.Parallel()

	counter := parseJava(t, "src/Counter.java", counterSource)
	helper := parseJava(t, "src/Helper.java", helperSource)

	req := RunRequest{Recipes: []RecipeSpec{{
		Name:    recipes.ChangeIdentifierName,
		Options: map[string]any{"from": "count", "to": "total"},
	}}}
	res, err, serveErr := remoteRun(t, NewServer(recipes.NewRegistry()), req, counter, helper)
	require.NoError(t, err)
	require.NoError(t, serveErr)

	assert.True(t, res.Converged)
	assert.Equal(t, recipe.Converged, res.State)
	require.Len(t, res.Results, 2)

	changed := res.Results[0]
	assert.True(t, changed.Changed())
	assert.Equal(t, []string{recipes.ChangeIdentifierName}, changed.Recipes)
	assert.Same(t, counter, changed.Before)
	assert.NotContains(t, changed.After.Print(), "count")
	assert.Contains(t, changed.After.Print(), "total = total + by;")
	assert.Equal(t, counter.ID(), changed.After.ID())

	after := changed.After.(*java.CompilationUnit)
	assert.Same(t, counter.Statements[0].Element, after.Statements[0].Element, "package node is the input's own")
	assert.Same(t, counter.Statements[1].Element, after.Statements[1].Element, "import node is the input's own")

	unchanged := res.Results[1]
	assert.False(t, unchanged.Changed())
	assert.Same(t, helper, unchanged.After)
}

func TestRemoteRunner_GeneratedAndDeletedFiles(t *testing.T) {
	t.Parallel()

	counter := parseJava(t, "src/Counter.java", counterSource)
	helper := parseJava(t, "src/Helper.java", helperSource)

	req := RunRequest{Recipes: []RecipeSpec{
		{Name: recipes.DeleteSourceFilesName, Options: map[string]any{"pattern": "**/Helper.java"}},
		{Name: recipes.CreateTextFileName, Options: map[string]any{"path": "NOTICE.txt", "content": "generated\n"}},
	}}
	res, err, serveErr := remoteRun(t, NewServer(recipes.NewRegistry()), req, counter, helper)
	require.NoError(t, err)
	require.NoError(t, serveErr)

	byPath := map[string]recipe.Result{}
	for _, r := range res.Results {
		byPath[r.Path()] = r
	}
	require.Contains(t, byPath, "src/Helper.java")
	assert.True(t, byPath["src/Helper.java"].Deleted())
	assert.Equal(t, recipes.DeleteSourceFilesName, byPath["src/Helper.java"].DeletedBy)

	require.Contains(t, byPath, "NOTICE.txt")
	gen := byPath["NOTICE.txt"]
	assert.True(t, gen.Generated())
	assert.Equal(t, recipes.CreateTextFileName, gen.GeneratedBy)
	assert.Equal(t, "generated\n", gen.After.Print())

	assert.False(t, byPath["src/Counter.java"].Changed())
}

func TestRemoteRunner_UnknownRecipe(t *testing.T) {
	t.Parallel()

	counter := parseJava(t, "src/Counter.java", counterSource)
	req := RunRequest{Recipes: []RecipeSpec{{Name: "lathe.NoSuchRecipe"}}}
	res, err, serveErr := remoteRun(t, NewServer(recipes.NewRegistry()), req, counter)

	assert.Nil(t, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote run failed")
	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Contains(t, remote.Message, "unknown recipe")

	require.Error(t, serveErr)
	assert.True(t, errors.Is(serveErr, recipe.ErrUnknownRecipe))
}

func TestServer_RejectsBadFileCount(t *testing.T) {
	t.Parallel()

	for _, n := range []int{-1, 4} {
		conn, errc := startServer(t, NewServer(recipes.NewRegistry(), WithMaxFiles(3)))
		require.NoError(t, conn.WriteJSON(Msg{Type: MsgRun, Run: &RunRequest{Files: n}}))

		var reply Msg
		require.NoError(t, conn.ReadJSON(&reply))
		assert.Equal(t, MsgError, reply.Type)
		assert.Contains(t, reply.Error, "protocol violation")

		serveErr := <-errc
		require.Error(t, serveErr)
		assert.True(t, errors.Is(serveErr, ErrProtocolViolation), "files=%d", n)
	}
}

func TestRemoteRunner_NonConvergenceIsReported(t *testing.T) {
	t.Parallel()

	counter := parseJava(t, "src/Counter.java", counterSource)
	req := RunRequest{Recipes: []RecipeSpec{{Name: recipes.ToggleMarkerName}}, MaxCycles: 3}
	res, err, serveErr := remoteRun(t, NewServer(recipes.NewRegistry()), req, counter)
	require.NoError(t, serveErr)

	require.NotNil(t, res)
	assert.False(t, res.Converged)
	assert.Equal(t, recipe.MaxCyclesExceeded, res.State)
	assert.Equal(t, 3, res.CyclesUsed)
	if err != nil {
		assert.Contains(t, err.Error(), "remote run")
	}
}

func TestServer_SessionCachePersists(t *testing.T) {
	t.Parallel()

	db := newTestStore(t)
	srv := NewServer(recipes.NewRegistry(), WithServerStore(db))
	counter := parseJava(t, "src/Counter.java", counterSource)

	req := RunRequest{
		Recipes: []RecipeSpec{{Name: recipes.FindMethodsName, Options: map[string]any{"name": "reset"}}},
		Session: "ci",
	}
	_, err, serveErr := remoteRun(t, srv, req, counter)
	require.NoError(t, err)
	require.NoError(t, serveErr)

	n, err := db.CountSnapshots("ci")
	require.NoError(t, err)
	assert.Positive(t, n)
}
