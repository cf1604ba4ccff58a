package lathe

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jward/lathe/java/recipes"
	"github.com/jward/lathe/recipe"
	"github.com/jward/lathe/rpc"
	"github.com/jward/lathe/tree"
)

// benchJavaSource is a realistic Java class with fields, constructors,
// loops and calls for exercising the parse and recipe pipeline. %s is the
// class name.
const benchJavaSource = `package com.example.bench;

import java.util.ArrayList;
import java.util.List;

/**
 * Collects readings and reports on them.
 */
public class %s {
    private final String name;
    private final List<Integer> readings = new ArrayList<>();
    private int count = 0;

    public %s(String name) {
        this.name = name;
    }

    public void record(int value) {
        if (value < 0) {
            throw new IllegalArgumentException("negative reading");
        }
        readings.add(value);
        count = count + 1;
    }

    public int total() {
        int sum = 0;
        for (int r : readings) {
            sum += r;
        }
        return sum;
    }

    public double average() {
        if (count == 0) {
            return 0.0;
        }
        return (double) total() / count;
    }

    public String report() {
        StringBuilder sb = new StringBuilder(name);
        sb.append(": ");
        sb.append(count);
        sb.append(" readings, average ");
        sb.append(average());
        System.out.println(sb.toString());
        return sb.toString();
    }
}
`

// setupBenchProject writes n Java classes below a temp dir and returns it.
func setupBenchProject(b *testing.B, n int) string {
	b.Helper()
	dir := b.TempDir()
	for i := range n {
		name := fmt.Sprintf("Sensor%d", i)
		path := filepath.Join(dir, "src", name+".java")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			b.Fatal(err)
		}
		src := fmt.Sprintf(benchJavaSource, name, name)
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			b.Fatal(err)
		}
	}
	return dir
}

func benchParse(b *testing.B, e *Engine, root string) []tree.SourceFile {
	b.Helper()
	files, err := e.ParseDirectory(context.Background(), root)
	if err != nil {
		b.Fatal(err)
	}
	return files
}

// BenchmarkParseDirectory measures parsing a 50-file project serially and
// with the worker pool.
func BenchmarkParseDirectory(b *testing.B) {
	root := setupBenchProject(b, 50)
	for _, parallel := range []bool{false, true} {
		b.Run(fmt.Sprintf("parallel=%v", parallel), func(b *testing.B) {
			e, err := New(WithParallel(parallel))
			if err != nil {
				b.Fatal(err)
			}
			defer e.Close()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				benchParse(b, e, root)
			}
		})
	}
}

// BenchmarkRun_ChangeIdentifier measures a rename that touches every file
// and converges in the second cycle.
func BenchmarkRun_ChangeIdentifier(b *testing.B) {
	root := setupBenchProject(b, 50)
	e, err := New()
	if err != nil {
		b.Fatal(err)
	}
	defer e.Close()
	files := benchParse(b, e, root)
	rs := []recipe.Recipe{recipes.ChangeIdentifier("count", "total")}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Run(ctx, rs, files); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRun_NoChange measures the path where no recipe edits anything,
// which should allocate next to nothing per file.
func BenchmarkRun_NoChange(b *testing.B) {
	root := setupBenchProject(b, 50)
	e, err := New()
	if err != nil {
		b.Fatal(err)
	}
	defer e.Close()
	files := benchParse(b, e, root)
	rs := []recipe.Recipe{recipes.ChangeIdentifier("doesNotOccur", "other")}
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Run(ctx, rs, files); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRunRemote_Session measures repeated remote runs in one session,
// where every run after the first sends no tree data.
func BenchmarkRunRemote_Session(b *testing.B) {
	root := setupBenchProject(b, 20)
	e, err := New(WithStore(filepath.Join(b.TempDir(), "bench.db")))
	if err != nil {
		b.Fatal(err)
	}
	defer e.Close()

	// Client and server caches live side by side in one database.
	srv := httptest.NewServer(rpc.NewServer(recipes.NewRegistry(), rpc.WithServerStore(e.Store())).Handler())
	defer srv.Close()
	files := benchParse(b, e, root)
	ctx := context.Background()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	req := rpc.RunRequest{Recipes: []rpc.RecipeSpec{{
		Name:    recipes.FindMethodsName,
		Options: map[string]any{"name": "println"},
	}}, Session: "bench"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// The server closes the connection after each run.
		conn, err := rpc.Dial(ctx, url)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := e.RunRemote(ctx, conn, req, files); err != nil {
			b.Fatal(err)
		}
		conn.Close()
	}
}
