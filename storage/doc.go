// Package storage abstracts the destination backends uploaded files can be
// relocated to: the local filesystem or an S3-compatible object store.
//
// Both backends implement the same Storage interface, so callers move
// uploads without caring where they land:
//
//	st, err := storage.NewLocalStorage("./uploads", "/files/")
//	if err != nil {
//	    return err
//	}
//	obj, err := st.Save(ctx, reader, "avatars/me.png")
//	// obj.Path => "avatars/me.png", st.URL(obj.Path) => "/files/avatars/me.png"
//
// All paths are validated against traversal before any operation; local
// storage additionally confines every path to its base directory.
package storage
