/*
Package flowgraph projects a menu step map into a positioned node-link graph.

The projection runs in three passes over the steps reachable from the root:

 1. Level assignment: each step gets the minimum depth at which it is reached.
 2. Column assignment: steps sharing a level are spread across a fixed band in discovery order.
 3. Materialization: a depth-first walk emits one Node per step and one Edge per
    (source, target, option) triple, following the expansion policy.

Both walks use an explicit stack of frames instead of recursion. Every frame carries an
immutable snapshot of the path that led to it, so cycle detection is a property of the
branch and never depends on state mutated by a sibling branch.

The graph is a pure value: it is rebuilt from scratch for every refresh, save or toggle
of the expand-all mode.
*/
package flowgraph
