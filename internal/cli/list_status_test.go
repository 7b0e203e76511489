package cli_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainctl/chain/testhelpers"
	"github.com/chainctl/chain/testhelpers/scenario"
)

func TestStatusRendersChainTipToRootWithArrowOnCurrentBranch(t *testing.T) {
	t.Parallel()
	binaryPath := testhelpers.GetSharedBinaryPath()
	if binaryPath == "" {
		if err := testhelpers.GetBinaryError(); err != nil {
			t.Fatalf("failed to build chain binary: %v", err)
		}
		t.Fatal("chain binary not built")
	}

	s := scenario.NewScenarioParallel(t, testhelpers.BasicSceneSetup).WithBinaryPath(binaryPath)
	s.WithChain("auth", "main", "f1", "f2")
	s.Checkout("f2")

	output, err := s.RunCliAndGetOutput("status")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(output), "\n")
	var body []string
	for _, l := range lines {
		if strings.Contains(l, "⦁") || strings.Contains(l, "root branch") {
			body = append(body, l)
		}
	}
	require.Len(t, body, 3, "output:\n%s", output)
	require.Contains(t, body[0], "f2")
	require.Contains(t, body[0], "1 ahead")
	require.Contains(t, body[0], "→")
	require.Contains(t, body[1], "f1")
	require.Contains(t, body[1], "1 ahead")
	require.Contains(t, body[2], "main")
	require.Contains(t, body[2], "root branch")
}

func TestListRendersEveryChainTipToRoot(t *testing.T) {
	t.Parallel()
	binaryPath := testhelpers.GetSharedBinaryPath()
	if binaryPath == "" {
		if err := testhelpers.GetBinaryError(); err != nil {
			t.Fatalf("failed to build chain binary: %v", err)
		}
		t.Fatal("chain binary not built")
	}

	s := scenario.NewScenarioParallel(t, testhelpers.BasicSceneSetup).WithBinaryPath(binaryPath)
	s.WithChain("auth", "main", "f1", "f2")
	s.Checkout("main")

	output, err := s.RunCliAndGetOutput("list")
	require.NoError(t, err)

	require.Contains(t, output, "chain auth")
	require.Contains(t, output, "f2")
	require.Contains(t, output, "f1")
	require.Contains(t, output, "main")
	require.Contains(t, output, "(root branch)")

	// f2 (the tip) must be rendered before f1, which must be rendered before the root line.
	f2Index := strings.Index(output, "f2")
	f1Index := strings.Index(output, "f1")
	rootIndex := strings.Index(output, "(root branch)")
	require.True(t, f2Index < f1Index, "expected f2 before f1, output:\n%s", output)
	require.True(t, f1Index < rootIndex, "expected f1 before root line, output:\n%s", output)
}

func TestListReportsNoChains(t *testing.T) {
	t.Parallel()
	binaryPath := testhelpers.GetSharedBinaryPath()
	if binaryPath == "" {
		if err := testhelpers.GetBinaryError(); err != nil {
			t.Fatalf("failed to build chain binary: %v", err)
		}
		t.Fatal("chain binary not built")
	}

	s := scenario.NewScenarioParallel(t, testhelpers.BasicSceneSetup).WithBinaryPath(binaryPath)

	output, err := s.RunCliAndGetOutput("list")
	require.NoError(t, err)
	require.Contains(t, output, "no chains")
}

func TestStatusReportsBranchNotInChain(t *testing.T) {
	t.Parallel()
	binaryPath := testhelpers.GetSharedBinaryPath()
	if binaryPath == "" {
		if err := testhelpers.GetBinaryError(); err != nil {
			t.Fatalf("failed to build chain binary: %v", err)
		}
		t.Fatal("chain binary not built")
	}

	s := scenario.NewScenarioParallel(t, testhelpers.BasicSceneSetup).WithBinaryPath(binaryPath)

	output, err := s.RunCliAndGetOutput("status")
	require.NoError(t, err)
	require.Contains(t, output, "is not part of any chain")
}
