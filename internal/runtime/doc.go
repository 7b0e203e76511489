// CHAIN_DEMO, when set to any non-empty value, switches GetContext to the in-memory fake repo
// registered by internal/demo instead of discovering a real git repository. Intended for
// generating screenshots/demos without a throwaway repo on disk.
package runtime
