/*
Package bindtrim decides which types and members of a native GUI toolkit's
binding layer are reachable from a host application, so that everything else
can be rejected from a smaller binding build.

# Architecture pipeline (for developers)

Each element in the pipeline has distinct sub-packages that do a specific part. These are then "glued" together in the [FindRejections] function.
 1. [scan]: Harvest every identifier the application code could plausibly refer to
 2. [catalog]: Answer structural questions about the binding layer's API surface (types, ancestry, members, signatures)
 3. [policy]: Force retention of types and members that usage evidence alone would wrongly reject
 4. [closure]: Compute the reachable-type/member fixpoint and emit the rejection stream

The usage scan is deliberately unsound in the over-approximating direction: a
name it misses is a potential crash in the trimmed build, a name it wrongly
includes only costs savings. Known gaps are patched in [policy], not in the
scanner.
*/
package bindtrim
