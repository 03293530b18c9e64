/*
Package mock contains mock implementations of iko interfaces, intended for
use in unit-tests.

Mocks of interfaces defined in iko are located in `./pkg/...`. Note that the
directory structure mirrors that of the root-level `pkg/` path.

The package name of all mock implementations follows the `mock_*` pattern,
where `*` is the original package name.  For example, mocks for `pkg/dom`
are found in `./pkg/dom` under the package name `mock_dom`.
*/
package mock
