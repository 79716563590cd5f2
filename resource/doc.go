// Package resource provides the handle table behind externref values.
//
// Guest code never sees host objects, only 32-bit handles. The table maps
// each handle back to the exact Go value that was inserted:
//
//	table := resource.NewTable()
//	h, err := table.Insert(obj)  // h != 0
//	v, ok := table.Get(h)        // v == obj, same identity
//
// Handle 0 is never issued; it stands for the null reference.
//
// Intern is the form the bridge uses when lowering externref values. It
// hands back the live handle of an equal comparable value instead of adding
// a second entry, so a pointer passed to the guest on every call occupies a
// single slot.
//
// # Lifetime
//
// Guest code may keep references in tables or globals that the host cannot
// observe, so handles stay valid until Remove, Clear or Close. The host
// drops a reference it knows the guest no longer holds with Remove. Values that
// implement Dropper are notified when they leave the table.
//
// # Thread Safety
//
// Table is safe for concurrent use.
package resource
